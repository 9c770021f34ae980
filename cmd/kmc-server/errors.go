package main

import "fmt"

func errRunExists(id RunID) error {
	return fmt.Errorf("run with id %s already exists", id)
}

func errRunNotFound(id RunID) error {
	return fmt.Errorf("run with id %s does not exist", id)
}
