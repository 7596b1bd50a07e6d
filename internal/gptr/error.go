package gptr

import "fmt"

func errorf(method, format string, a ...interface{}) error {
	return fmt.Errorf("github.com/nicolagi/rpctree/internal/gptr."+method+": "+format, a...)
}
