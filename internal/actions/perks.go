package actions

import "sync"

// perkLedger tracks which one-time perks each session has consumed.
type perkLedger struct {
	mu   sync.Mutex
	used map[string]map[string]bool
}

func newPerkLedger() *perkLedger {
	return &perkLedger{used: make(map[string]map[string]bool)}
}

// use marks perk as consumed for session and reports whether this was the
// first use.
func (l *perkLedger) use(session, perk string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	perks := l.used[session]
	if perks == nil {
		perks = make(map[string]bool)
		l.used[session] = perks
	}
	if perks[perk] {
		return false
	}
	perks[perk] = true
	return true
}

func (l *perkLedger) forget(session string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.used, session)
}
