package main

import (
	"log"
	"strconv"
)

func atoiOrDefault(v string, def int) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid integer %q, using default %d", v, def)
		return def
	}
	return n
}

func atofOrDefault(v string, def float64) float64 {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("invalid float %q, using default %v", v, def)
		return def
	}
	return f
}
