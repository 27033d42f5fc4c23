package auth

// SetJWKSURL troca o endpoint das chaves da Microsoft durante o teste
func SetJWKSURL(u string) (restore func()) {
	old := jwksURL
	jwksURL = u
	return func() { jwksURL = old }
}
