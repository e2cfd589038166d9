package gate

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"lsh/config"
	"lsh/internal/audit"
	"lsh/internal/auth"
	"lsh/internal/census"
	"lsh/internal/network"
)

// State is a step of the access gate. Checks run in declaration order and
// every check either advances or ends in StateRejected.
type State int

const (
	StateAllowList State = iota
	StateSessionLimit
	StateLogin
	StateGranted
	StateRejected
)

func (s State) String() string {
	switch s {
	case StateAllowList:
		return "allow_list"
	case StateSessionLimit:
		return "session_limit"
	case StateLogin:
		return "login"
	case StateGranted:
		return "granted"
	case StateRejected:
		return "rejected"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Decision is the terminal outcome of Authorize. A rejected decision means
// the session must end with exit status 0.
type Decision struct {
	Granted bool
	State   State
	// FailedAt is the check that rejected the session. Unset when Granted.
	FailedAt State
	Event    audit.Kind
}

// LastLogins is the optional last-login record keeper.
type LastLogins interface {
	Last(id string) (auth.LoginRecord, bool, error)
	Record(rec auth.LoginRecord) error
}

// Gate runs the allow-list, session-limit and credential checks for one
// incoming session.
type Gate struct {
	AllowListPath  string
	CredentialPath string
	ProgramName    string
	SessionLimit   int
	MaxPasswordLen int

	Census     census.Census
	Audit      *audit.Log
	LastLogins LastLogins

	In   *bufio.Reader
	InFd int
	Out  io.Writer
	Now  func() time.Time
}

// New builds a gate from settings. The census, audit log and terminal are
// supplied by the caller.
func New(s config.Settings, c census.Census, a *audit.Log, in *bufio.Reader, inFd int, out io.Writer) *Gate {
	return &Gate{
		AllowListPath:  s.Path(s.AllowListFile),
		CredentialPath: s.Path(s.CredentialFile),
		ProgramName:    s.ProgramName,
		SessionLimit:   s.SessionLimit,
		MaxPasswordLen: config.MaxPasswordLen,
		Census:         c,
		Audit:          a,
		In:             in,
		InFd:           inFd,
		Out:            out,
		Now:            time.Now,
	}
}

// Authorize walks the gate for ep. A non-nil error is a fatal condition
// (unreadable allow list or credentials, unusable census, or a failed
// audit write) and the caller must exit with a failure status.
func (g *Gate) Authorize(ep network.Endpoint) (Decision, error) {
	state := StateAllowList
	for {
		var (
			next     State
			rejected audit.Kind
			err      error
		)

		switch state {
		case StateAllowList:
			next, rejected, err = g.checkAllowList(ep)
		case StateSessionLimit:
			next, rejected, err = g.checkSessionLimit(ep)
		case StateLogin:
			next, rejected, err = g.login(ep)
		case StateGranted:
			log.Info().Str("address", ep.Address).Msg("Access granted")
			return Decision{Granted: true, State: StateGranted, Event: audit.KindLoginOK}, nil
		default:
			return Decision{State: StateRejected, FailedAt: state}, fmt.Errorf("gate: unexpected state %v", state)
		}

		if err != nil {
			return Decision{State: StateRejected, FailedAt: state}, err
		}
		if next == StateRejected {
			log.Warn().
				Str("address", ep.Address).
				Str("check", state.String()).
				Str("event", string(rejected)).
				Msg("Access denied")
			return Decision{State: StateRejected, FailedAt: state, Event: rejected}, nil
		}
		state = next
	}
}

func (g *Gate) checkAllowList(ep network.Endpoint) (State, audit.Kind, error) {
	list, err := network.LoadAllowList(g.AllowListPath)
	if err != nil {
		fmt.Fprintln(g.Out, "error! block all IP")
		return StateRejected, "", err
	}

	if list.Contains(ep.Address) {
		return StateSessionLimit, "", nil
	}

	fmt.Fprintln(g.Out, "NOT ALLOWED IP")
	return g.reject(audit.KindNotAllowedIP, ep)
}

func (g *Gate) checkSessionLimit(ep network.Endpoint) (State, audit.Kind, error) {
	res, err := g.Census.CountRunning(g.ProgramName, g.SessionLimit)
	if err != nil {
		return StateRejected, "", fmt.Errorf("process census: %w", err)
	}

	log.Debug().
		Str("program", g.ProgramName).
		Int("count", res.Count).
		Int("limit", g.SessionLimit).
		Msg("Process census complete")

	if !res.Exceeded {
		return StateLogin, "", nil
	}

	fmt.Fprintln(g.Out, "Already running.")
	return g.reject(audit.KindFullLogin, ep)
}

func (g *Gate) login(ep network.Endpoint) (State, audit.Kind, error) {
	cred, err := auth.LoadCredential(g.CredentialPath)
	if err != nil {
		return StateRejected, "", err
	}

	fmt.Fprint(g.Out, config.IDPrompt)
	id, err := g.readLine()
	if err != nil {
		return StateRejected, "", err
	}

	fmt.Fprint(g.Out, config.PasswordPrompt)
	pr := auth.NewPasswordReader(g.In, g.InFd, g.MaxPasswordLen)
	password, err := pr.ReadPassword()
	if err != nil {
		return StateRejected, "", err
	}

	if !cred.Verify(id, password) {
		fmt.Fprint(g.Out, "\nLogin failed\n")
		return g.reject(audit.KindLoginFailed, ep)
	}

	fmt.Fprint(g.Out, "\nLogin complete\n")
	entry := audit.Entry{Timestamp: g.now(), Kind: audit.KindLoginOK, Address: ep.Address}
	fmt.Fprint(g.Out, entry.Line())
	if err := g.Audit.Append(audit.Accepted, entry); err != nil {
		return StateRejected, "", err
	}

	g.updateLastLogin(cred.ID, ep.Address, entry.Timestamp)
	return StateGranted, "", nil
}

func (g *Gate) reject(kind audit.Kind, ep network.Endpoint) (State, audit.Kind, error) {
	entry := audit.Entry{Timestamp: g.now(), Kind: kind, Address: ep.Address}
	if err := g.Audit.Append(audit.Rejected, entry); err != nil {
		return StateRejected, kind, err
	}
	return StateRejected, kind, nil
}

// updateLastLogin prints the previous login for id and records this one.
// Failures are logged only; the audit log is the authoritative record.
func (g *Gate) updateLastLogin(id, address string, at time.Time) {
	if g.LastLogins == nil {
		return
	}

	prev, ok, err := g.LastLogins.Last(id)
	if err != nil {
		log.Warn().Err(err).Str("id", id).Msg("Failed to read last login")
	} else if ok {
		fmt.Fprintf(g.Out, "Last login: %s from %s\n", prev.At.Format(audit.TimeLayout), prev.Address)
	}

	if err := g.LastLogins.Record(auth.LoginRecord{ID: id, Address: address, At: at}); err != nil {
		log.Warn().Err(err).Str("id", id).Msg("Failed to record last login")
	}
}

func (g *Gate) readLine() (string, error) {
	line, err := g.In.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read id: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (g *Gate) now() time.Time {
	if g.Now == nil {
		return time.Now()
	}
	return g.Now()
}
