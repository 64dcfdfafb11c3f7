//go:build !integration

package command

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Command
	}{
		{"help", "/help", Command{Name: Help, Args: []string{}}},
		{"help with bot suffix", "/help@meal_review_bot", Command{Name: Help, Args: []string{}}},
		{"cancel", "/cancel", Command{Name: Cancel, Args: []string{}}},
		{
			"rest add joins the address",
			"/rest add Joe's 5th Ave",
			Command{Name: Rest, Action: ActionAdd, RestaurantName: "Joe's", RestaurantAddress: "5th Ave"},
		},
		{"rest search", "/rest search kfc", Command{Name: Rest, Action: ActionSearch, Pattern: "kfc"}},
		{"rest edit", "/rest edit 42", Command{Name: Rest, Action: ActionEdit, ID: 42}},
		{"dish list", "/dish list 7", Command{Name: Dish, Action: ActionList, ID: 7}},
		{"dish add", "/dish add 7", Command{Name: Dish, Action: ActionAdd, ID: 7}},
		{"review start", "/review 3", Command{Name: Review, Action: ActionStart, ID: 3}},
		{"review show", "/review show 3", Command{Name: Review, Action: ActionShow, ID: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.line)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.line, err)
			}
			if got.Name != tt.want.Name || got.Action != tt.want.Action || got.ID != tt.want.ID {
				t.Errorf("want %+v, got %+v", tt.want, got)
			}
			if got.RestaurantName != tt.want.RestaurantName || got.RestaurantAddress != tt.want.RestaurantAddress {
				t.Errorf("restaurant fields: want %q/%q, got %q/%q",
					tt.want.RestaurantName, tt.want.RestaurantAddress, got.RestaurantName, got.RestaurantAddress)
			}
			if got.Pattern != tt.want.Pattern {
				t.Errorf("pattern: want %q, got %q", tt.want.Pattern, got.Pattern)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		line string
		kind error
	}{
		{"hello there", ErrNotACommand},
		{"", ErrNotACommand},
		{"/unknown", ErrUnknownCommand},
		{"/Help", ErrUnknownCommand},
		{"/rest", ErrTooFewArguments},
		{"/rest add Joe's", ErrTooFewArguments},
		{"/rest search", ErrTooFewArguments},
		{"/rest edit", ErrTooFewArguments},
		{"/rest edit abc", ErrInvalidArgument},
		{"/rest edit -4", ErrInvalidArgument},
		{"/rest remove 1", ErrInvalidArgument},
		{"/dish", ErrTooFewArguments},
		{"/dish list", ErrTooFewArguments},
		{"/dish eat 1", ErrInvalidArgument},
		{"/review", ErrTooFewArguments},
		{"/review burger", ErrInvalidArgument},
		{"/review show", ErrTooFewArguments},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			_, err := Parse(tt.line)
			if !errors.Is(err, tt.kind) {
				t.Fatalf("Parse(%q): want %v, got %v", tt.line, tt.kind, err)
			}
		})
	}
}

func TestParseError_Hint(t *testing.T) {
	_, err := Parse("/rest add")
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if pe.Hint() != UsageRestAdd {
		t.Errorf("want hint %q, got %q", UsageRestAdd, pe.Hint())
	}

	_, err = Parse("/rest edit abc")
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if want := "abc is not a valid argument, " + UsageRestEdit; pe.Hint() != want {
		t.Errorf("want hint %q, got %q", want, pe.Hint())
	}
	if Reason(err) != "invalid_argument" {
		t.Errorf("unexpected reason %q", Reason(err))
	}
}
