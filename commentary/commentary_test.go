package commentary

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wfunc/rpsls/game"
)

func TestRulesGenerator(t *testing.T) {
	g := NewRulesGenerator()

	outcome, edge := game.Resolve(game.Rock, game.Scissors)
	if got := g.Narrate(game.Rock, game.Scissors, outcome, edge); got != "Rock crushes Scissors." {
		t.Errorf("narration = %q", got)
	}

	outcome, edge = game.Resolve(game.Spock, game.Spock)
	got := g.Narrate(game.Spock, game.Spock, outcome, edge)
	if got == "" {
		t.Error("draw narration should not be empty")
	}
}

func TestHTTPGenerator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text":"An inspired choice, statistically speaking."}`))
	}))
	defer srv.Close()

	g := NewHTTPGenerator(srv.URL)
	outcome, edge := game.Resolve(game.Paper, game.Spock)
	if got := g.Narrate(game.Paper, game.Spock, outcome, edge); got != "An inspired choice, statistically speaking." {
		t.Errorf("narration = %q", got)
	}
}

func TestHTTPGenerator_FallbackOnFailure(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
		"malformed body": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		},
		"empty text": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"text":""}`))
		},
	}

	for name, handler := range cases {
		srv := httptest.NewServer(handler)
		g := NewHTTPGenerator(srv.URL)
		outcome, edge := game.Resolve(game.Rock, game.Paper)
		if got := g.Narrate(game.Rock, game.Paper, outcome, edge); got != Fallback {
			t.Errorf("%s: narration = %q, want fallback", name, got)
		}
		srv.Close()
	}
}

func TestHTTPGenerator_FallbackWhenUnreachable(t *testing.T) {
	g := NewHTTPGenerator("http://127.0.0.1:1/commentary")
	outcome, edge := game.Resolve(game.Rock, game.Paper)
	if got := g.Narrate(game.Rock, game.Paper, outcome, edge); got != Fallback {
		t.Errorf("narration = %q, want fallback", got)
	}
}
