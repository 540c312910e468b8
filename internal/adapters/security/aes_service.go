package security

import (
	"DeskShell/internal/core/ports"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

var (
	ErrFrameTooShort  = errors.New("sealed frame is too short")
	ErrInvalidKeySize = errors.New("session key must be 16 or 32 bytes")
)

// frameSealer is AES-GCM keyed per session. The host generates the key and
// hands it to the renderers it launches, so it never touches disk.
//
// Sealed layout: nonce || ciphertext || tag. The associated data is not
// transmitted; both ends derive it from the frame's direction.
type frameSealer struct {
	aead cipher.AEAD
	log  zerolog.Logger
}

// NewAESService creates a sealer from a 16 or 32 byte session key.
func NewAESService(sessionKey []byte, baseLogger *zerolog.Logger) (ports.SecurityPort, error) {
	if len(sessionKey) != 16 && len(sessionKey) != 32 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidKeySize, len(sessionKey))
	}

	block, err := aes.NewCipher(sessionKey)
	if err != nil {
		return nil, fmt.Errorf("session cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("session gcm: %w", err)
	}

	log := baseLogger.With().Str("component", "frame_sealer").Logger()
	log.Info().Int("key_bits", len(sessionKey)*8).Msg("Frame sealing enabled")

	return &frameSealer{aead: aead, log: log}, nil
}

// NewAESServiceFromHex decodes a hex session key, as found in IPC_SESSION_KEY.
func NewAESServiceFromHex(hexKey string, baseLogger *zerolog.Logger) (ports.SecurityPort, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("session key is not hex: %w", err)
	}
	return NewAESService(key, baseLogger)
}

func (s *frameSealer) Seal(frame, associated []byte) ([]byte, error) {
	nonceSize := s.aead.NonceSize()
	out := make([]byte, nonceSize, nonceSize+len(frame)+s.aead.Overhead())
	if _, err := rand.Read(out); err != nil {
		s.log.Error().Err(err).Msg("Failed to generate nonce")
		return nil, fmt.Errorf("frame nonce: %w", err)
	}
	return s.aead.Seal(out, out, frame, associated), nil
}

func (s *frameSealer) Open(sealed, associated []byte) ([]byte, error) {
	nonceSize := s.aead.NonceSize()
	if len(sealed) < nonceSize+s.aead.Overhead() {
		return nil, ErrFrameTooShort
	}

	frame, err := s.aead.Open(nil, sealed[:nonceSize], sealed[nonceSize:], associated)
	if err != nil {
		// Wrong key, wrong direction, or tampered.
		s.log.Warn().Err(err).Msg("Rejected frame that failed to open")
		return nil, fmt.Errorf("open frame: %w", err)
	}
	return frame, nil
}
