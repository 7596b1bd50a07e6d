package bootstrap

import "fmt"

func errorf(method, format string, a ...interface{}) error {
	return fmt.Errorf("github.com/nicolagi/rpctree/bootstrap."+method+": "+format, a...)
}
