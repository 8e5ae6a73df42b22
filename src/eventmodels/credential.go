package eventmodels

import "time"

// Credential is the full OAuth1 credential set needed to sign broker requests.
type Credential struct {
	ConsumerKey       string    `json:"consumer_key"`
	ConsumerSecret    string    `json:"consumer_secret"`
	AccessToken       string    `json:"oauth_token"`
	AccessTokenSecret string    `json:"oauth_token_secret"`
	CreatedAt         time.Time `json:"created_at"`
}

func (c Credential) IsComplete() bool {
	return c.ConsumerKey != "" && c.ConsumerSecret != "" && c.AccessToken != "" && c.AccessTokenSecret != ""
}

func (c Credential) Age(now time.Time) time.Duration {
	return now.Sub(c.CreatedAt)
}
