// Command roll rolls dice from the command line, e.g. "roll 2d6 1d20".
package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fablestack/engine/internal/core/dice"
	"github.com/fablestack/engine/internal/platform/config"
)

func main() {
	seed := flag.Int64("seed", 0, "seed for reproducible rolls (0 seeds from the clock)")
	flag.Parse()
	if flag.NArg() == 0 {
		config.Exitf("usage: roll [-seed n] <count>d<sides> ...")
	}

	specs := make([]dice.Spec, 0, flag.NArg())
	for _, arg := range flag.Args() {
		spec, err := parseSpec(arg)
		if err != nil {
			config.Exitf("parse %q: %v", arg, err)
		}
		specs = append(specs, spec)
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	result, err := dice.RollDice(dice.Request{Dice: specs, Seed: *seed})
	if err != nil {
		config.Exitf("roll: %v", err)
	}

	for _, roll := range result.Rolls {
		fmt.Printf("d%d: %v = %d\n", roll.Sides, roll.Results, roll.Total)
	}
	fmt.Printf("total: %d\n", result.Total)
}

func parseSpec(arg string) (dice.Spec, error) {
	countText, sidesText, ok := strings.Cut(strings.ToLower(arg), "d")
	if !ok {
		return dice.Spec{}, fmt.Errorf("expected <count>d<sides>")
	}
	if countText == "" {
		countText = "1"
	}
	count, err := strconv.Atoi(countText)
	if err != nil {
		return dice.Spec{}, fmt.Errorf("invalid count: %w", err)
	}
	sides, err := strconv.Atoi(sidesText)
	if err != nil {
		return dice.Spec{}, fmt.Errorf("invalid sides: %w", err)
	}
	return dice.Spec{Sides: sides, Count: count}, nil
}
