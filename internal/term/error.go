package term

import "fmt"

func errorf(method, format string, a ...interface{}) error {
	return fmt.Errorf("github.com/nicolagi/rpctree/internal/term."+method+": "+format, a...)
}
