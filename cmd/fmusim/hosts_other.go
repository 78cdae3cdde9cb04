//go:build !unix

package main

import "fmt"

func newMappedHost() (*simHost, error) {
	return nil, fmt.Errorf("mmap host is only available on unix")
}
