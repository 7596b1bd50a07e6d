package transport

import "fmt"

func errorf(method, format string, a ...interface{}) error {
	return fmt.Errorf("github.com/nicolagi/rpctree/internal/transport."+method+": "+format, a...)
}
