package client

import "fmt"

func errorf(method, format string, a ...interface{}) error {
	return fmt.Errorf("github.com/nicolagi/rpctree/client."+method+": "+format, a...)
}
