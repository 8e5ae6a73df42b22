package eventmodels

type RequestTokenResponse struct {
	SessionID    string `json:"sessionId"`
	AuthorizeURL string `json:"authorizeUrl"`
}

type AccessTokenRequest struct {
	SessionID    string `json:"sessionId"`
	VerifierCode string `json:"verifierCode"`
}

func (r *AccessTokenRequest) Validate() error {
	if r.SessionID == "" || r.VerifierCode == "" {
		return ErrAccessTokenRequestIncomplete
	}

	return nil
}

type AuthStatusResponse struct {
	Authenticated bool   `json:"authenticated"`
	SessionID     string `json:"sessionId,omitempty"`
}

type StatusResponse struct {
	Status string `json:"status"`
}
