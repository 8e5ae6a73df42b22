package eventmodels

// OAuthHandle is the in-flight request token of an OAuth1 handshake. It is
// exchanged, together with the verifier code the user copies from the broker's
// authorize page, for an access token.
type OAuthHandle struct {
	ConsumerKey    string
	ConsumerSecret string
	RequestToken   string
	RequestSecret  string
}
