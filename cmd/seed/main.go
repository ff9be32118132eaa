// Package main seeds a local congress database with a demo roster and one
// bill, for exercising the API by hand. The roster can be overridden with a
// JSON file via -file.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/statecraft/congress/internal/services/congress/domain/bill"
	"github.com/statecraft/congress/internal/services/congress/domain/member"
	"github.com/statecraft/congress/internal/services/congress/service"
	"github.com/statecraft/congress/internal/services/congress/storage/sqlite"
	"github.com/statecraft/congress/internal/telemetry"
)

type seedMember struct {
	Principal string `json:"principal"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	State     string `json:"state"`
	District  int    `json:"district"`
}

var demoRoster = []seedMember{
	{"rep-adams", "Jo", "Adams", "house", "MA", 1},
	{"rep-brooks", "Sam", "Brooks", "house", "MA", 2},
	{"rep-cole", "Max", "Cole", "house", "NY", 4},
	{"sen-diaz", "Ana", "Diaz", "senate", "NY", 0},
	{"sen-evans", "Lee", "Evans", "senate", "VT", 0},
	{"del-frost", "Kim", "Frost", "non_voting", "PR", 0},
	{"vp-grant", "Rae", "Grant", "vice_president", "", 0},
	{"pres-hale", "Ash", "Hale", "president", "", 0},
}

func main() {
	dbPath := flag.String("db", "congress.db", "path to the congress SQLite database")
	admin := flag.String("admin", "admin", "administrator principal")
	rosterFile := flag.String("file", "", "JSON roster file (defaults to the built-in demo roster)")
	flag.Parse()

	roster := demoRoster
	if *rosterFile != "" {
		loaded, err := loadRoster(*rosterFile)
		if err != nil {
			log.Printf("load roster: %v", err)
			os.Exit(1)
		}
		roster = loaded
	}

	if err := run(*dbPath, *admin, roster); err != nil {
		log.Printf("seed failed: %v", err)
		os.Exit(1)
	}
}

func loadRoster(path string) ([]seedMember, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var roster []seedMember
	if err := json.Unmarshal(data, &roster); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(roster) == 0 {
		return nil, fmt.Errorf("%s contains no members", path)
	}
	return roster, nil
}

func run(dbPath, admin string, roster []seedMember) error {
	store, err := sqlite.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("close store: %v", err)
		}
	}()

	ctx := context.Background()
	svc := service.New(store, admin,
		service.WithAudit(telemetry.NewEmitter(store)),
	)

	for _, m := range roster {
		role, ok := member.ParseRole(m.Role)
		if !ok {
			return fmt.Errorf("unknown role %q for %s", m.Role, m.Principal)
		}
		registered, err := svc.AddMember(ctx, admin, member.RegisterInput{
			Principal: m.Principal,
			FirstName: m.FirstName,
			LastName:  m.LastName,
			Role:      role,
			State:     m.State,
			District:  m.District,
		})
		if err != nil {
			return fmt.Errorf("register %s: %w", m.Principal, err)
		}
		fmt.Printf("registered %s (%s), term ends %s\n",
			registered.Principal, registered.Role, registered.TermEnd.Format("2006-01-02"))
	}

	sponsor := roster[0].Principal
	proposed, err := svc.ProposeBill(ctx, sponsor, bill.ProposeInput{
		Title:          "Public Transit Expansion Act",
		EnactingClause: "Be it enacted by the Congress assembled",
		EffectiveAt:    time.Now().UTC().AddDate(1, 0, 0),
		Sponsors:       []string{sponsor},
		Sections: []string{
			"Section 1. Funds are appropriated for regional transit expansion.",
			"Section 2. Grants are administered by the transit authority.",
		},
		Definitions: []string{"transit authority: the agency designated in Section 2"},
	})
	if err != nil {
		return fmt.Errorf("propose bill: %w", err)
	}
	fmt.Printf("proposed bill %d: %s\n", proposed.Index, proposed.Title)
	return nil
}
