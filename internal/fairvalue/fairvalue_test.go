package fairvalue

import (
	"context"
	"testing"

	"github.com/brabsmit/sportsbook-arb/internal/domain"
	"github.com/brabsmit/sportsbook-arb/internal/errkind"
)

func gameWith(books ...domain.Bookmaker) domain.OddsGame {
	return domain.OddsGame{
		ID:       "game-1",
		HomeTeam: "X",
		AwayTeam: "Y",
		Bookmakers: books,
	}
}

func bookmaker(key string, teamPrice, oppPrice int) domain.Bookmaker {
	return domain.Bookmaker{
		Key: key,
		Outcomes: []domain.OddsOutcome{
			{Name: "X", Price: teamPrice},
			{Name: "Y", Price: oppPrice},
		},
	}
}

func TestOddsDevigProvider_SpreadTooHigh(t *testing.T) {
	game := gameWith(
		bookmaker("book-a", 150, -200),
		bookmaker("book-b", -250, 190),
	)

	p := NewOddsDevigProvider()
	_, err := p.FairValue(context.Background(), game, "X")
	if err == nil {
		t.Fatal("expected SpreadTooHigh rejection, got nil error")
	}
	if !errkind.Is(err, errkind.Logical) {
		t.Fatalf("expected Logical kind, got %v", errkind.KindOf(err))
	}
}

func TestOddsDevigProvider_FairValue(t *testing.T) {
	game := gameWith(
		bookmaker("book-a", -110, -110),
		bookmaker("book-b", -120, 100),
	)

	p := NewOddsDevigProvider()
	res, err := p.FairValue(context.Background(), game, "X")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.FairValueCents != 51 {
		t.Errorf("FairValueCents = %d, want 51", res.FairValueCents)
	}
	if res.BookmakerCount != 2 {
		t.Errorf("BookmakerCount = %d, want 2", res.BookmakerCount)
	}
	if res.Spread <= 0 || res.Spread > maxSpread {
		t.Errorf("spread out of expected range: %v", res.Spread)
	}
}

func TestOddsDevigProvider_NoBookmakersForTarget(t *testing.T) {
	game := gameWith(bookmaker("book-a", -110, -110))

	p := NewOddsDevigProvider()
	_, err := p.FairValue(context.Background(), game, "Z")
	if err == nil {
		t.Fatal("expected error for missing target team")
	}
	if !errkind.Is(err, errkind.Logical) {
		t.Fatalf("expected Logical kind, got %v", errkind.KindOf(err))
	}
}

func TestOddsDevigProvider_EmptyGame(t *testing.T) {
	p := NewOddsDevigProvider()
	_, err := p.FairValue(context.Background(), domain.OddsGame{}, "X")
	if err == nil {
		t.Fatal("expected error for game with no bookmakers")
	}
}
