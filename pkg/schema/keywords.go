package schema

// KeywordCategory groups keywords by where the parser accepts them.
type KeywordCategory uint8

const (
	OtherKeyword KeywordCategory = iota
	StructModifier
	TypeKeyword
)

var keywords = map[string]TokenType{
	"package":  PackageKeyword,
	"using":    UsingKeyword,
	"struct":   StructKeyword,
	"about":    AboutKeyword,
	"var":      VarKeyword,
	"obsolete": ObsoleteKeyword,

	"public":    PublicKeyword,
	"internal":  InternalKeyword,
	"private":   PrivateKeyword,
	"protected": ProtectedKeyword,
	"final":     FinalKeyword,
	"ref":       RefKeyword,

	"boolean":  BooleanKeyword,
	"int8":     Int8Keyword,
	"uint8":    UInt8Keyword,
	"int16":    Int16Keyword,
	"uint16":   UInt16Keyword,
	"int32":    Int32Keyword,
	"uint32":   UInt32Keyword,
	"int64":    Int64Keyword,
	"uint64":   UInt64Keyword,
	"float32":  Float32Keyword,
	"float64":  Float64Keyword,
	"float128": Float128Keyword,
	"char":     CharKeyword,
	"string":   StringKeyword,
	"nint":     NIntKeyword,
	"nuint":    NUIntKeyword,
	"vint":     VIntKeyword,
	"vuint":    VUIntKeyword,
}

var keywordNames = func() map[TokenType]string {
	m := make(map[TokenType]string, len(keywords))
	for raw, t := range keywords {
		m[t] = raw
	}
	return m
}()

// LookupKeyword returns the token type and category of raw if it is a keyword.
func LookupKeyword(raw string) (TokenType, KeywordCategory, bool) {
	t, ok := keywords[raw]
	if !ok {
		return Identifier, OtherKeyword, false
	}
	switch {
	case t.IsTypeKeyword():
		return t, TypeKeyword, true
	case t.IsStructModifier():
		return t, StructModifier, true
	default:
		return t, OtherKeyword, true
	}
}
