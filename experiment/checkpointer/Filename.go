package checkpointer

import (
	"fmt"
	"time"
)

// FilenameEnumerator returns a function generating the filenames
// prefix<n>extension for n = start+1, start+2, ...
func FilenameEnumerator(start int, prefix, extension string) func() string {
	n := start
	return func() string {
		n++
		return fmt.Sprintf("%v%v%v", prefix, n, extension)
	}
}

// FileTimer returns a function generating filenames suffixed by the
// current Unix time in nanoseconds
func FileTimer(prefix, extension string) func() string {
	return func() string {
		return fmt.Sprintf("%v-%v%v", prefix, time.Now().UnixNano(),
			extension)
	}
}
