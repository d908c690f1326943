package serializer

import "github.com/prn-tf/marketplace/internal/domain"

// LoginInput is a validated credentials body.
type LoginInput struct {
	Meta
	Username string
	Password string
}

// DecodeLogin reads a login body. Both fields are required and non-blank;
// the password is taken verbatim.
func DecodeLogin(body []byte) (*LoginInput, error) {
	p, err := decode(Login, body, false)
	if err != nil {
		return nil, err
	}

	in := &LoginInput{Meta: p.meta}
	if v, ok := p.String("username", true); ok {
		in.Username = v
		if v == "" {
			p.errs.Add("username", domain.MsgBlank)
		}
	}
	if v, ok := p.String("password", false); ok {
		in.Password = v
		if v == "" {
			p.errs.Add("password", domain.MsgBlank)
		}
	}

	if err := p.err(); err != nil {
		return nil, err
	}
	return in, nil
}

// TokenView is the login response.
type TokenView struct {
	Token string `json:"token"`
}
