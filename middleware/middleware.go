package middleware

import (
	"fmt"

	"github.com/Anasanas60/krishokbazar/internal/auth"
)

type Mid struct {
	keys *auth.Keys
}

func NewMid(keys *auth.Keys) (*Mid, error) {
	if keys == nil {
		return nil, fmt.Errorf("auth keys not provided")
	}
	return &Mid{keys: keys}, nil
}
