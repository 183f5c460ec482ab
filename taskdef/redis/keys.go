package redis

import "fmt"

func taskDefKey(keyPrefix, name string) string {
	return fmt.Sprintf("%vtaskdef:%v", keyPrefix, name)
}

// taskDefNamesKey returns the key of the SET holding the names of all stored definitions.
func taskDefNamesKey(keyPrefix string) string {
	return keyPrefix + "taskdefs"
}
