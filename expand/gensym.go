package expand

import "strconv"

// gensym generates the names of completion flags.  Names are formed from a
// prefix and a counter and are guaranteed never to equal a name in the taken
// set, which holds every identifier of the file being expanded (and of its
// package) as well as every name generated so far.
type gensym struct {
	prefix  string
	counter int
	taken   map[string]struct{}
}

func newGensym(prefix string, idents map[string]struct{}, reserved []string) *gensym {
	g := &gensym{
		prefix: prefix,
		taken:  make(map[string]struct{}, len(idents)+len(reserved)),
	}

	for name := range idents {
		g.taken[name] = struct{}{}
	}

	for _, name := range reserved {
		g.taken[name] = struct{}{}
	}

	return g
}

// next returns a fresh flag name.
func (g *gensym) next() string {
	for {
		name := g.prefix + strconv.Itoa(g.counter)
		g.counter++

		if _, ok := g.taken[name]; !ok {
			g.taken[name] = struct{}{}
			return name
		}
	}
}
