package credential

import "github.com/go-jose/go-jose/v4"

// Signature algorithms accepted when parsing the token envelope. The claim
// peek never verifies signatures, so the list only needs to cover what
// backends realistically issue.
var allSignatureAlgorithms = []jose.SignatureAlgorithm{
	jose.HS256, jose.HS384, jose.HS512,
	jose.RS256, jose.RS384, jose.RS512,
	jose.ES256, jose.ES384, jose.ES512,
	jose.PS256, jose.PS384, jose.PS512,
	jose.EdDSA,
}
