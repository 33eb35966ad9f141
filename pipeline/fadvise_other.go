//go:build !linux

package pipeline

import "os"

func fadviseSequential(*os.File, int64) {}
