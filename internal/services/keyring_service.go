package services

import (
	"errors"

	"github.com/zalando/go-keyring"
)

const keyringService = "webforge"

// generationTokenAccount is the single credential this app manages: the API
// token for the hosted generation/storage service.
const generationTokenAccount = "generation-service"

type KeyringService struct{}

func NewKeyringService() *KeyringService {
	return &KeyringService{}
}

func (s *KeyringService) StoreToken(token string) error {
	if token == "" {
		return errors.New("token is empty")
	}
	return keyring.Set(keyringService, generationTokenAccount, token)
}

func (s *KeyringService) GetToken() (string, error) {
	return keyring.Get(keyringService, generationTokenAccount)
}

func (s *KeyringService) DeleteToken() error {
	return keyring.Delete(keyringService, generationTokenAccount)
}
