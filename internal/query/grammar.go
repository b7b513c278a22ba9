package query

// Grammar documents the dynamic-playlist query language's BNF (spec.md
// §4.4). It's documentation only - the recursive-descent parser in
// parser.go/lexer.go implements it directly rather than generating from it.
const Grammar = `
query      ::= or-expr
or-expr    ::= and-expr ( "OR" and-expr )*
and-expr   ::= primary ( "AND" primary )*
primary    ::= "(" or-expr ")" | leaf
leaf       ::= value operator value
operator   ::= "=" | "!=" | "<" | "<=" | ">" | ">="
             | "CONTAINS" | "ANYINSIDE" | "ALLINSIDE" | "NONEINSIDE"
             | "LIKE" | "ANYLIKE" | "ALLLIKE"
value      ::= field | string | integer | set
field      ::= "title" | "artist" | "album_artist" | "album"
             | "genre" | "release_year"
string     ::= '"' char* '"'
integer    ::= "-"? digit+
set        ::= "[" (value ("," value)*)? "]"
`
