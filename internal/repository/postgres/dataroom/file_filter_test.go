package dataroom

import (
	"strings"
	"testing"
	"time"

	models "dataroom/internal/domain/models/dataroom"
)

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "report", want: "report"},
		{in: "100%", want: `100\%`},
		{in: "a_b", want: `a\_b`},
		{in: `c:\docs`, want: `c:\\docs`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := escapeLike(tt.in); got != tt.want {
				t.Errorf("escapeLike(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestBuildFileFilter(t *testing.T) {
	t.Run("owner only", func(t *testing.T) {
		where, args := buildFileFilter(&models.FileQuery{OwnerID: "u1", Limit: 20})
		if where != "dr.owner_id = $1" {
			t.Errorf("where = %q", where)
		}
		if len(args) != 1 || args[0] != "u1" {
			t.Errorf("args = %v", args)
		}
	})

	t.Run("all filters numbered in order", func(t *testing.T) {
		from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
		min, max := int64(1), int64(1024)

		where, args := buildFileFilter(&models.FileQuery{
			OwnerID:    "u1",
			Query:      "50%",
			DataRoomID: "room",
			FolderID:   "folder",
			MimeType:   "application/pdf",
			DateFrom:   &from,
			DateTo:     &to,
			SizeMin:    &min,
			SizeMax:    &max,
			Limit:      20,
		})

		if len(args) != 9 {
			t.Fatalf("len(args) = %d, want 9", len(args))
		}
		if args[1] != `%50\%%` {
			t.Errorf("name pattern = %v, want escaped wildcard", args[1])
		}
		for _, want := range []string{"$2", "$3", "$4", "$5", "$6", "$7", "$8", "$9"} {
			if !strings.Contains(where, want) {
				t.Errorf("where clause missing placeholder %s: %s", want, where)
			}
		}
		if !strings.HasPrefix(where, "dr.owner_id = $1") {
			t.Errorf("owner condition must come first: %s", where)
		}
	})
}
