package jobs

import (
	"fmt"
	"strings"
)

func sprint(args []any) string {
	return strings.TrimSuffix(fmt.Sprintln(args...), "\n")
}
