package auth

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

var bcryptCost = 12

// Credential is the single account accepted by the shell, loaded from a
// file holding one "<id> : <encoded password>" line.
type Credential struct {
	ID      string
	Encoded string
}

// LoadCredential reads the first line of path.
func LoadCredential(path string) (Credential, error) {
	f, err := os.Open(path)
	if err != nil {
		return Credential{}, fmt.Errorf("failed to open credential file: %w", err)
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && line == "" {
		return Credential{}, fmt.Errorf("failed to read credential file: %w", err)
	}
	return ParseCredential(line)
}

// ParseCredential parses "<id> : <encoded>". Whitespace around the colon is
// optional; only the first whitespace-delimited word on each side is kept.
func ParseCredential(line string) (Credential, error) {
	idPart, pwPart, ok := strings.Cut(line, ":")
	if !ok {
		return Credential{}, fmt.Errorf("malformed credential line: missing ':'")
	}

	idFields := strings.Fields(idPart)
	pwFields := strings.Fields(pwPart)
	if len(idFields) == 0 || len(pwFields) == 0 {
		return Credential{}, fmt.Errorf("malformed credential line: empty id or password")
	}

	return Credential{ID: idFields[0], Encoded: pwFields[0]}, nil
}

// Encode applies the legacy login encoding: every byte b of password
// becomes the decimal strings of b-1 and 45, concatenated without
// separators. The output always starts from an empty buffer.
func Encode(password string) string {
	var sb strings.Builder
	for i := 0; i < len(password); i++ {
		sb.WriteString(strconv.Itoa(int(password[i]) - 1))
		sb.WriteString("45")
	}
	return sb.String()
}

// IsBcrypt reports whether the stored value is a bcrypt hash rather than a
// legacy encoding.
func (c Credential) IsBcrypt() bool {
	return strings.HasPrefix(c.Encoded, "$2")
}

// Verify reports whether id and password match the credential exactly.
// Bcrypt hashes are checked first; anything else is compared against the
// legacy encoding.
func (c Credential) Verify(id, password string) bool {
	if id != c.ID {
		return false
	}

	if c.IsBcrypt() {
		err := bcrypt.CompareHashAndPassword([]byte(c.Encoded), []byte(password))
		if err != nil && err != bcrypt.ErrMismatchedHashAndPassword {
			log.Warn().Err(err).Str("id", id).Msg("Stored bcrypt hash is unusable")
		}
		return err == nil
	}

	return Encode(password) == c.Encoded
}

// HashPassword returns a bcrypt hash suitable for the credential file.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Line renders the credential in the on-disk format.
func (c Credential) Line() string {
	return fmt.Sprintf("%s : %s\n", c.ID, c.Encoded)
}
