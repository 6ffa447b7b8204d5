//go:build gym

package main

import _ "github.com/samuelfneumann/replaydqn/environment/gym"
