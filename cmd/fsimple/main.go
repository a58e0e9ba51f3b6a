// A simple, single-catalog process that reads actions from stdin and
// writes states to stdout.

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Comcast/flange/catalog"
	"github.com/Comcast/flange/core"
	"github.com/Comcast/flange/interpreters"
)

func main() {

	var (
		catalogFilename = flag.String("s", "", "catalog filename (YAML)")
		initialState    = flag.String("state", "", "initial state (in JSON, beats the catalog's)")

		diag = flag.Bool("d", false, "print diagnostics")
		echo = flag.Bool("e", false, "echo input lines")
	)

	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c, err := catalog.Read(*catalogFilename)
	if err != nil {
		panic(err)
	}

	compiled, err := c.Compile(ctx, interpreters.Standard())
	if err != nil {
		panic(err)
	}

	if *initialState != "" {
		var state interface{}
		if err := json.Unmarshal([]byte(*initialState), &state); err != nil {
			panic(err)
		}
		compiled.Catalog.Initial = state
	}

	store, err := compiled.NewStore()
	if err != nil {
		panic(err)
	}

	bound, err := core.Bind(compiled.Creators, store.Dispatch)
	if err != nil {
		panic(err)
	}

	store.Subscribe(func(ctx context.Context, state interface{}) {
		fmt.Printf("%s\n", JS(state))
	})

	// Each input line is either a raw action (a JSON map) or a
	// creator invocation:
	//
	//   {"name":"incrementCount","args":[...]}
	//
	// A map with a "name" that's a bound creator is an
	// invocation; anything else is dispatched as-is.
	in := bufio.NewReader(os.Stdin)
	for {
		line, err := in.ReadBytes('\n')
		if err == io.EOF {
			break
		}
		if err != nil {
			panic(err)
		}
		if 0 == len(strings.TrimSpace(string(line))) {
			continue
		}

		var input interface{}
		if err = json.Unmarshal(line, &input); err != nil {
			fmt.Printf("error: %s\n", err)
			continue
		}

		if *echo {
			fmt.Printf("in: %s\n", JS(input))
		}

		var result interface{}
		if f, args, is := invocation(bound, input); is {
			result, err = f(ctx, args...)
		} else {
			result, err = store.Dispatch(ctx, input)
		}

		if err != nil {
			fmt.Printf("error: %s\n", err)
			continue
		}

		if *diag {
			fmt.Printf("# dispatched %s\n", JS(result))
		}
	}
}

// invocation checks whether the input names a bound creator.
func invocation(bound core.Bound, input interface{}) (core.BoundCreator, []interface{}, bool) {
	m, is := input.(map[string]interface{})
	if !is {
		return nil, nil, false
	}
	name, is := m["name"].(string)
	if !is {
		return nil, nil, false
	}
	f, have := bound[name]
	if !have {
		return nil, nil, false
	}
	args, _ := m["args"].([]interface{})
	return f, args, true
}

func JS(x interface{}) string {
	js, err := json.Marshal(&x)
	if err != nil {
		panic(err)
	}
	return string(js)
}
