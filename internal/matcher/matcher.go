// Package matcher builds a match-key index over exchange markets so the
// engine can look up "what ticker covers this odds-feed game" in O(1)
// instead of scanning every ticker's title for a substring match on every
// tick.
package matcher

import (
	"strings"
	"unicode"

	"github.com/brabsmit/sportsbook-arb/internal/domain"
)

// removableWords drops from a normalized name without changing which
// matchup it identifies: soccer club-suffix words, plus the common
// mascot nickname a city/market name carries that an odds feed's
// city-only name usually omits (e.g. "Chicago Bulls" vs "Chicago"). Not
// exhaustive by league, but covers the nicknames seen across the major
// US sports plus top European football club suffixes.
var removableWords = map[string]bool{
	"fc": true, "cf": true, "sc": true, "afc": true, "united": true,

	// NFL
	"cardinals": true, "falcons": true, "ravens": true, "bills": true,
	"panthers": true, "bears": true, "bengals": true, "browns": true,
	"cowboys": true, "broncos": true, "lions": true, "packers": true,
	"texans": true, "colts": true, "jaguars": true, "chiefs": true,
	"raiders": true, "chargers": true, "rams": true, "dolphins": true,
	"vikings": true, "patriots": true, "saints": true, "giants": true,
	"jets": true, "eagles": true, "steelers": true, "49ers": true,
	"seahawks": true, "buccaneers": true, "titans": true, "commanders": true,

	// NBA
	"hawks": true, "celtics": true, "nets": true, "hornets": true,
	"bulls": true, "cavaliers": true, "mavericks": true, "nuggets": true,
	"pistons": true, "warriors": true, "rockets": true, "pacers": true,
	"clippers": true, "lakers": true, "grizzlies": true, "heat": true,
	"bucks": true, "timberwolves": true, "pelicans": true, "knicks": true,
	"thunder": true, "magic": true, "76ers": true, "sixers": true,
	"suns": true, "blazers": true, "kings": true, "spurs": true,
	"raptors": true, "jazz": true, "wizards": true,

	// MLB
	"angels": true, "astros": true, "athletics": true, "bluejays": true,
	"orioles": true, "redsox": true, "cubs": true, "whitesox": true,
	"reds": true, "guardians": true, "rockies": true, "tigers": true,
	"royals": true, "marlins": true, "brewers": true, "twins": true,
	"mets": true, "yankees": true, "phillies": true, "pirates": true,
	"padres": true, "mariners": true, "rangers": true,

	// NHL
	"ducks": true, "bruins": true, "sabres": true, "flames": true,
	"hurricanes": true, "blackhawks": true, "avalanche": true,
	"bluejackets": true, "oilers": true,
	"wild": true, "canadiens": true, "predators": true, "islanders": true,
	"devils": true, "senators": true, "flyers": true, "coyotes": true,
	"penguins": true, "sharks": true, "kraken": true, "blues": true,
	"lightning": true, "mapleleafs": true, "canucks": true, "capitals": true,
}

// Normalize lowercases, expands "&" to "and", folds "saint" to "st", strips
// punctuation, and drops a small set of club-suffix and mascot words so
// that "Manchester United" and "Manchester United FC", and
// "St. Louis" and "Saint Louis", collide on the same normalized name. It
// does not attempt full fuzzy matching; the odds feed and the exchange are
// expected to otherwise agree on team naming.
func Normalize(name string) string {
	name = strings.ReplaceAll(name, "&", " and ")

	var b strings.Builder
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r) || r == '-' || r == '.':
			b.WriteRune(' ')
		}
	}
	fields := strings.Fields(b.String())
	out := fields[:0]
	for _, f := range fields {
		if f == "saint" {
			f = "st"
		}
		if removableWords[f] {
			continue
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		// every word was a removable mascot/suffix, e.g. the name is the
		// mascot alone ("Cowboys"); keep it rather than collapse distinct
		// teams onto the same empty key.
		out = fields
	}
	return strings.Join(out, " ")
}

// Index maps a match key to the exchange markets discovered for it.
type Index struct {
	byKey map[domain.MatchKey]*domain.MatchupEntry
}

// NewIndex builds an empty index.
func NewIndex() *Index {
	return &Index{byKey: make(map[domain.MatchKey]*domain.MatchupEntry)}
}

// Side describes which half of a MatchupEntry a ticker was assigned to,
// and whether that ticker's YES side corresponds to the requested team or
// its opponent.
type Side struct {
	Key      domain.MatchKey
	Inverted bool
}

// Put inserts or replaces the market for one side of a matchup. isAway
// selects which of the two sides the market occupies; ties are broken by
// whichever market the caller inserted second.
func (idx *Index) Put(key domain.MatchKey, market domain.ExchangeMarket, isAway bool) {
	entry, ok := idx.byKey[key]
	if !ok {
		entry = &domain.MatchupEntry{Key: key}
		idx.byKey[key] = entry
	}
	m := market
	if isAway {
		entry.Away = &m
	} else {
		entry.Home = &m
	}
}

// Lookup returns the matchup entry for a key, if one has been indexed.
func (idx *Index) Lookup(key domain.MatchKey) (*domain.MatchupEntry, bool) {
	e, ok := idx.byKey[key]
	return e, ok
}

// Remove drops a key from the index entirely, e.g. once its game has
// settled or the ticker has expired.
func (idx *Index) Remove(key domain.MatchKey) {
	delete(idx.byKey, key)
}

// Len reports how many distinct matchups are currently indexed.
func (idx *Index) Len() int {
	return len(idx.byKey)
}

// ResolveSide determines, for a target team within a matchup, which
// exchange market covers it and whether that market's YES side must be
// inverted to represent the target team (i.e. the market's YES side is
// actually the opponent, so the target team's fair value must be applied
// to the market's NO side instead).
func ResolveSide(entry *domain.MatchupEntry, targetTeam, homeTeam string) (market *domain.ExchangeMarket, inverted bool, ok bool) {
	target := Normalize(targetTeam)
	home := Normalize(homeTeam)

	if entry.Home != nil && target == home {
		return entry.Home, false, true
	}
	if entry.Away != nil && target != home {
		return entry.Away, false, true
	}
	// Fall back to whichever side exists, inverted, when the exchange
	// only lists one side of the matchup as a single two-way market.
	if entry.Home != nil {
		return entry.Home, true, true
	}
	if entry.Away != nil {
		return entry.Away, true, true
	}
	return nil, false, false
}

// ParseTitle splits an exchange market title of the form "X at Y Winner?"
// or "X vs Y Winner?" into (away, home). Titles that don't match either
// pattern return ok=false so the caller can log and skip the market
// rather than index it under a garbage key.
func ParseTitle(title string) (away, home string, ok bool) {
	t := strings.TrimSpace(title)
	t = strings.TrimSuffix(t, "?")
	t = strings.TrimSuffix(strings.TrimSpace(t), "Winner")
	t = strings.TrimSpace(t)

	if i := strings.Index(t, " at "); i >= 0 {
		return strings.TrimSpace(t[:i]), strings.TrimSpace(t[i+len(" at "):]), true
	}
	if i := strings.Index(t, " vs "); i >= 0 {
		return strings.TrimSpace(t[:i]), strings.TrimSpace(t[i+len(" vs "):]), true
	}
	return "", "", false
}

// tickerSide reports which team a ticker's trailing dash-delimited segment
// names, by normalized prefix match against the away/home team names. An
// exchange ticker like "NFL-25JAN01DAL-DAL" carries the team whose YES side
// the market trades as its final segment.
func tickerSide(ticker, away, home string) (isAway bool, ok bool) {
	parts := strings.Split(ticker, "-")
	if len(parts) == 0 {
		return false, false
	}
	last := Normalize(parts[len(parts)-1])
	if last == "" {
		return false, false
	}
	normAway, normHome := Normalize(away), Normalize(home)
	if strings.HasPrefix(normAway, last) || strings.HasPrefix(last, normAway) {
		return true, true
	}
	if strings.HasPrefix(normHome, last) || strings.HasPrefix(last, normHome) {
		return false, true
	}
	return false, false
}

// BuildIndex constructs an Index from a batch of exchange markets filtered
// to one series. Markets whose title doesn't
// parse, whose expiration time is unset, or whose ticker doesn't name
// either team are skipped; dateFn extracts the YYYY-MM-DD date string
// from a market's expiration time.
func BuildIndex(sport string, markets []domain.ExchangeMarket, dateFn func(m domain.ExchangeMarket) string) *Index {
	idx := NewIndex()
	for _, m := range markets {
		away, home, ok := ParseTitle(m.Title)
		if !ok {
			continue
		}
		date := dateFn(m)
		if date == "" {
			continue
		}
		isAway, ok := tickerSide(m.Ticker, away, home)
		if !ok {
			continue
		}
		key := domain.NewMatchKey(sport, date, Normalize(away), Normalize(home))
		idx.Put(key, m, isAway)
	}
	return idx
}
