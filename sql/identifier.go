package sql

import (
	"strings"
	"sync"
)

type Identifier int

const MaxIdentifier = 128

const (
	AND Identifier = -(iota + 1)
	FALSE
	IS
	NOT
	NULL
	OR
	TRUE
)

var knownKeywords = map[string]struct {
	id       Identifier
	reserved bool
}{
	"AND":   {AND, true},
	"FALSE": {FALSE, true},
	"IS":    {IS, true},
	"NOT":   {NOT, true},
	"NULL":  {NULL, true},
	"OR":    {OR, true},
	"TRUE":  {TRUE, true},
}

var (
	mutex          sync.RWMutex
	lastIdentifier = Identifier(0)
	identifiers    = make(map[string]Identifier)
	keywords       = make(map[string]Identifier)
	names          = make(map[Identifier]string)
)

func intern(s string) Identifier {
	mutex.RLock()
	id, found := identifiers[s]
	mutex.RUnlock()
	if found {
		return id
	}

	mutex.Lock()
	defer mutex.Unlock()

	if id, found := identifiers[s]; found {
		return id
	}
	lastIdentifier += 1
	identifiers[s] = lastIdentifier
	names[lastIdentifier] = s
	return lastIdentifier
}

// ID returns the identifier for s; keywords are matched case insensitively.
func ID(s string) Identifier {
	if len(s) > MaxIdentifier {
		s = s[:MaxIdentifier]
	}

	if id, found := keywords[strings.ToUpper(s)]; found {
		return id
	}
	return intern(s)
}

// QuotedID returns the identifier for s without looking for keywords.
func QuotedID(s string) Identifier {
	if len(s) > MaxIdentifier {
		s = s[:MaxIdentifier]
	}
	return intern(s)
}

func (id Identifier) String() string {
	mutex.RLock()
	defer mutex.RUnlock()
	return names[id]
}

func (id Identifier) IsReserved() bool {
	return id < 0
}

func init() {
	for s, n := range knownKeywords {
		keywords[s] = n.id
		names[n.id] = s
	}
}
