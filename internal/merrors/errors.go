// Package merrors collects the error kinds that cross component boundaries,
// so RPC and CLI callers can discriminate on them with errors.Is/errors.As
// instead of matching error strings.
package merrors

import "fmt"

// Sentinel error kinds. Wrap these with github.com/pkg/errors.Wrap(f) to add
// context; callers unwrap with errors.Is.
var (
	ErrNotFound              = fmt.Errorf("not found")
	ErrDuplicateName         = fmt.Errorf("duplicate name")
	ErrInvalidInput          = fmt.Errorf("invalid input")
	ErrPathIsDirectory       = fmt.Errorf("path is a directory")
	ErrWrongExtension        = fmt.Errorf("wrong file extension")
	ErrFileNotFound          = fmt.Errorf("file not found")
	ErrDecodeError           = fmt.Errorf("decode error")
	ErrRescanInProgress      = fmt.Errorf("rescan already in progress")
	ErrAnalyzeInProgress     = fmt.Errorf("analyze already in progress")
	ErrReclusterInProgress   = fmt.Errorf("recluster already in progress")
	ErrClusteringNotConverged = fmt.Errorf("could not find optimal k")
	ErrInsufficientAnalyses  = fmt.Errorf("insufficient analyses")
	ErrBackup                = fmt.Errorf("backup error")
)

// InvalidQueryError is InvalidQuery(location) from spec.md §7: a parse
// failure annotated with the offset, counted in runes, it occurred at.
type InvalidQueryError struct {
	Location int
	Msg      string
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("invalid query at offset %d: %s", e.Location, e.Msg)
}

// Discriminant returns a stable, serializable string identifying the error
// kind, for the RPC facade to translate internal errors into wire-safe
// variants (spec.md §7 "RPC translates every internal error into a
// serialisable variant with a stable discriminant").
func Discriminant(err error) string {
	switch {
	case err == nil:
		return ""
	case isOneOf(err, ErrNotFound):
		return "NotFound"
	case isOneOf(err, ErrDuplicateName):
		return "DuplicateName"
	case isOneOf(err, ErrInvalidInput):
		return "InvalidInput"
	case isOneOf(err, ErrPathIsDirectory):
		return "PathIsDirectory"
	case isOneOf(err, ErrWrongExtension):
		return "WrongExtension"
	case isOneOf(err, ErrFileNotFound):
		return "FileNotFound"
	case isOneOf(err, ErrDecodeError):
		return "DecodeError"
	case isOneOf(err, ErrRescanInProgress):
		return "RescanInProgress"
	case isOneOf(err, ErrAnalyzeInProgress):
		return "AnalyzeInProgress"
	case isOneOf(err, ErrReclusterInProgress):
		return "ReclusterInProgress"
	case isOneOf(err, ErrClusteringNotConverged):
		return "ClusteringNotConverged"
	case isOneOf(err, ErrInsufficientAnalyses):
		return "InsufficientAnalyses"
	case isOneOf(err, ErrBackup):
		return "BackupError"
	default:
		if _, ok := err.(*InvalidQueryError); ok {
			return "InvalidQuery"
		}
		return "Internal"
	}
}

func isOneOf(err, target error) bool {
	for err != nil {
		if err == target {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
