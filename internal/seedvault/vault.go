// Package seedvault keeps the house secret in the OS keyring, with a JSON
// file fallback for hosts without one. Table server seeds are derived from
// the secret, so a ledger can be audited after a restart.
package seedvault

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/zalando/go-keyring"

	"github.com/MJE43/colorway-poker/internal/engine"
)

const (
	// DefaultService is the keyring service name.
	DefaultService = "colorway-poker"
	// DefaultAccount holds the house secret.
	DefaultAccount = "house"

	partSecret = "secret"
)

// ErrNotFound is returned when no secret is stored.
var ErrNotFound = keyring.ErrNotFound

// Vault wraps the OS keychain with an optional file fallback.
type Vault struct {
	service      string
	fallbackPath string
	mu           sync.Mutex
}

// New creates a vault. An empty fallbackPath disables the file fallback.
func New(service, fallbackPath string) *Vault {
	if strings.TrimSpace(service) == "" {
		service = DefaultService
	}
	return &Vault{service: service, fallbackPath: fallbackPath}
}

func (v *Vault) key(account, part string) string {
	return fmt.Sprintf("%s/%s", account, part)
}

// Secret returns the stored house secret for account.
func (v *Vault) Secret(account string) (string, error) {
	return v.getSecret(account, partSecret)
}

// SetSecret stores value as the house secret for account.
func (v *Vault) SetSecret(account, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("seedvault: secret must not be empty")
	}
	return v.setSecret(account, partSecret, value)
}

// EnsureSecret returns the house secret, generating and storing one on
// first use.
func (v *Vault) EnsureSecret(account string) (string, error) {
	secret, err := v.Secret(account)
	if err == nil {
		return secret, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return "", err
	}
	secret, err = engine.NewServerSeed()
	if err != nil {
		return "", err
	}
	if err := v.SetSecret(account, secret); err != nil {
		return "", err
	}
	return secret, nil
}

// Rotate replaces the house secret and returns the old and new values.
func (v *Vault) Rotate(account string) (string, string, error) {
	old, err := v.Secret(account)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", "", err
	}
	next, err := engine.NewServerSeed()
	if err != nil {
		return "", "", err
	}
	if err := v.SetSecret(account, next); err != nil {
		return "", "", err
	}
	return old, next, nil
}

// Delete removes the secret for account from the keyring and the fallback.
func (v *Vault) Delete(account string) error {
	err := keyring.Delete(v.service, v.key(account, partSecret))
	if err != nil && !errors.Is(err, keyring.ErrNotFound) && !v.keyringUnavailable(err) {
		_ = v.deleteFallbackAccount(account)
		return fmt.Errorf("seedvault: keyring delete failed: %w", err)
	}
	return v.deleteFallbackAccount(account)
}

// DeriveServerSeed is HMAC-SHA256(secret, "<table id>:<generation>") in hex.
func DeriveServerSeed(secret string, tableID uuid.UUID, generation int) string {
	h := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(h, "%s:%d", tableID, generation)
	return hex.EncodeToString(h.Sum(nil))
}

// Deriver returns a server seed source bound to secret.
func Deriver(secret string) func(uuid.UUID, int) (string, error) {
	return func(tableID uuid.UUID, generation int) (string, error) {
		return DeriveServerSeed(secret, tableID, generation), nil
	}
}

func (v *Vault) setSecret(account, part, value string) error {
	account = strings.TrimSpace(account)
	if account == "" {
		return fmt.Errorf("seedvault: account is required")
	}

	if err := keyring.Set(v.service, v.key(account, part), value); err == nil {
		return nil
	} else if !v.keyringUnavailable(err) {
		return fmt.Errorf("seedvault: keyring set %s: %w", part, err)
	}

	return v.setFallback(account, part, value)
}

func (v *Vault) getSecret(account, part string) (string, error) {
	account = strings.TrimSpace(account)
	if account == "" {
		return "", fmt.Errorf("seedvault: account is required")
	}

	val, err := keyring.Get(v.service, v.key(account, part))
	if err == nil {
		return val, nil
	}
	if !v.keyringUnavailable(err) && !errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("seedvault: keyring get %s: %w", part, err)
	}

	fallback, ferr := v.getFallback(account, part)
	if ferr == nil {
		return fallback, nil
	}
	if errors.Is(err, keyring.ErrNotFound) || errors.Is(ferr, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	return "", ferr
}

// keyringUnavailable reports whether err should send the vault to its
// fallback file. With a fallback configured, any keyring failure other than
// a missing entry does.
func (v *Vault) keyringUnavailable(err error) bool {
	if err == nil || errors.Is(err, keyring.ErrNotFound) {
		return false
	}
	if strings.TrimSpace(v.fallbackPath) != "" {
		return true
	}
	return isKeyringUnavailable(err)
}

func isKeyringUnavailable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "secret service") ||
		strings.Contains(msg, "org.freedesktop.secrets") ||
		strings.Contains(msg, "dbus") ||
		strings.Contains(msg, "no keychain") ||
		strings.Contains(msg, "keyring backend not available")
}

type fallbackSecrets map[string]map[string]string

func (v *Vault) setFallback(account, part, value string) error {
	if strings.TrimSpace(v.fallbackPath) == "" {
		return fmt.Errorf("seedvault: keyring unavailable and no fallback path configured")
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	data, err := v.readFallbackUnlocked()
	if err != nil {
		return err
	}
	if _, ok := data[account]; !ok {
		data[account] = map[string]string{}
	}
	data[account][part] = value
	return v.writeFallbackUnlocked(data)
}

func (v *Vault) getFallback(account, part string) (string, error) {
	if strings.TrimSpace(v.fallbackPath) == "" {
		return "", fmt.Errorf("seedvault: fallback path not configured")
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	data, err := v.readFallbackUnlocked()
	if err != nil {
		return "", err
	}
	val, ok := data[account][part]
	if !ok {
		return "", keyring.ErrNotFound
	}
	return val, nil
}

func (v *Vault) deleteFallbackAccount(account string) error {
	if strings.TrimSpace(v.fallbackPath) == "" {
		return nil
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	data, err := v.readFallbackUnlocked()
	if err != nil {
		return err
	}
	if _, ok := data[account]; !ok {
		return nil
	}
	delete(data, account)
	return v.writeFallbackUnlocked(data)
}

func (v *Vault) readFallbackUnlocked() (fallbackSecrets, error) {
	out := fallbackSecrets{}
	raw, err := os.ReadFile(v.fallbackPath)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, fmt.Errorf("seedvault: read fallback secrets: %w", err)
	}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("seedvault: decode fallback secrets: %w", err)
	}
	return out, nil
}

func (v *Vault) writeFallbackUnlocked(data fallbackSecrets) error {
	if err := os.MkdirAll(filepath.Dir(v.fallbackPath), 0o700); err != nil {
		return fmt.Errorf("seedvault: mkdir fallback dir: %w", err)
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("seedvault: encode fallback secrets: %w", err)
	}
	if err := os.WriteFile(v.fallbackPath, raw, 0o600); err != nil {
		return fmt.Errorf("seedvault: write fallback secrets: %w", err)
	}
	return nil
}
