package auth

import "crypto/subtle"

// CredentialVerifier decides whether a username and password pair may log in.
type CredentialVerifier interface {
	Verify(username, password string) bool
}

// StaticCredentials accepts exactly one configured pair.
type StaticCredentials struct {
	Username string
	Password string
}

// Verify compares both values in constant time. Both comparisons always run.
func (s StaticCredentials) Verify(username, password string) bool {
	u := subtle.ConstantTimeCompare([]byte(username), []byte(s.Username))
	p := subtle.ConstantTimeCompare([]byte(password), []byte(s.Password))
	return u&p == 1
}
