// Package state persists the interactive rover session between runs.
package state

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"errors"
	"hash/crc32"
	"os"
	"path/filepath"
	"time"

	"github.com/denisbrodbeck/machineid"

	"github.com/vinser/marsrover/internal/nav"
)

const (
	appDir   = "marsrover"
	saveFile = "session.dat"

	// HistoryLimit caps the number of remembered command lines.
	HistoryLimit = 20
)

// ErrCorrupted is returned by Read when a save file exists but cannot be trusted.
var ErrCorrupted = errors.New("session file corrupted")

// Session holds the rover and grid as they were when the last interactive
// run ended.
type Session struct {
	GridWidth  int           `json:"grid_width"`
	GridHeight int           `json:"grid_height"`
	X          int           `json:"x"`
	Y          int           `json:"y"`
	Direction  nav.Direction `json:"direction"`
	Strict     bool          `json:"strict"`  // Report unknown command characters
	Mute       bool          `json:"mute"`    // Mute all sounds
	History    []string      `json:"history"` // Command lines typed at the prompt, oldest first
	Moves      int           `json:"moves"`   // Total M commands executed
	SavedAt    time.Time     `json:"saved_at"`
}

// Position returns the saved rover position.
func (s *Session) Position() nav.Position {
	return nav.Position{X: s.X, Y: s.Y}
}

// SetPosition records the rover position and heading.
func (s *Session) SetPosition(p nav.Position, d nav.Direction) {
	s.X, s.Y = p.X, p.Y
	s.Direction = d
}

// Remember appends a command line to the history, dropping the oldest
// entries beyond HistoryLimit. Blank lines and immediate repeats are skipped.
func (s *Session) Remember(line string) {
	if line == "" {
		return
	}
	if n := len(s.History); n > 0 && s.History[n-1] == line {
		return
	}
	s.History = append(s.History, line)
	if over := len(s.History) - HistoryLimit; over > 0 {
		s.History = s.History[over:]
	}
}

var encryptionKey = generateKey()

// generateKey creates a 32-byte AES key from system-specific data.
func generateKey() []byte {
	appID, err := machineid.ProtectedID(appDir)
	if err != nil {
		appID = "default-marsrover-id" // Fallback if machine ID fails
	}
	sum := sha256.Sum256([]byte(appID))
	return sum[:]
}

// Save persists the session to an encrypted file with an integrity check.
func (s *Session) Save() error {
	path, err := SavePath()
	if err != nil {
		return err
	}
	s.SavedAt = time.Now()

	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}

	// Prepend CRC32 checksum
	crc := crc32.ChecksumIEEE(raw)
	data := make([]byte, 4+len(raw))
	binary.LittleEndian.PutUint32(data[:4], crc)
	copy(data[4:], raw)

	encrypted, err := encrypt(data)
	if err != nil {
		return err
	}
	return os.WriteFile(path, encrypted, 0600)
}

// Read loads the saved session. It returns os.ErrNotExist (wrapped) when no
// session was saved and ErrCorrupted when the file fails decryption or the
// checksum.
func Read() (*Session, error) {
	path, err := SavePath()
	if err != nil {
		return nil, err
	}
	encrypted, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	decrypted, err := decrypt(encrypted)
	if err != nil || len(decrypted) < 5 {
		return nil, ErrCorrupted
	}
	crcStored := binary.LittleEndian.Uint32(decrypted[:4])
	payload := decrypted[4:]
	if crc32.ChecksumIEEE(payload) != crcStored {
		return nil, ErrCorrupted
	}

	s := &Session{}
	if err := json.Unmarshal(payload, s); err != nil {
		return nil, ErrCorrupted
	}
	return s, nil
}

// Load returns the saved session, or nil if there is none worth restoring.
func Load() *Session {
	s, err := Read()
	if err != nil {
		return nil
	}
	if s.GridWidth <= 0 || s.GridHeight <= 0 || !s.Direction.Valid() {
		return nil
	}
	return s
}

// Reset removes the saved session. A missing file is not an error.
func Reset() error {
	path, err := SavePath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func encrypt(plain []byte) ([]byte, error) {
	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plain, nil), nil
}

func decrypt(ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	return gcm.Open(nil, ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():], nil)
}

// Dir returns the application directory inside the user config directory,
// creating it if needed.
func Dir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(configDir, appDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// SavePath returns the path to the session file.
func SavePath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, saveFile), nil
}
