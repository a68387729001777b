package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var errMissingUser = errors.New("missing --user (or QUICKLINKS_USER)")

// lookupError names the missing record and the command that lists valid values.
type lookupError struct {
	what string
	key  string
	list string
}

func (e lookupError) Error() string {
	return fmt.Sprintf("%s not found: %s (run `%s` to list them)", e.what, e.key, e.list)
}

func unknownUser(login string) error {
	return lookupError{what: "user", key: login, list: "quicklinks users"}
}

func parseItemID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid item id: %q", raw)
	}
	return id, nil
}
