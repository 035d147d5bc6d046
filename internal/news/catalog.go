package news

// Intner is the slice of *rand.Rand the catalog needs to pick a headline.
type Intner interface {
	Intn(n int) int
}

// Catalog is a fixed, ordered list of headlines. It never changes after
// construction.
type Catalog struct {
	items []string
}

var defaultHeadlines = []string{
	"Chipmaker beats earnings estimates as data center demand surges",
	"Central bank signals a pause in rate hikes after cooling inflation",
	"Oil prices jump after supply cuts announced by major producers",
	"Automaker recalls 400,000 vehicles over faulty braking software",
	"Retail giant warns of weak holiday sales amid shrinking consumer budgets",
}

// Default returns the five-headline catalog broadcast each round.
func Default() Catalog {
	return New(defaultHeadlines...)
}

// New copies items into a new catalog.
func New(items ...string) Catalog {
	c := Catalog{items: make([]string, len(items))}
	copy(c.items, items)
	return c
}

func (c Catalog) Len() int {
	return len(c.items)
}

// Headlines returns a copy of the catalog in order.
func (c Catalog) Headlines() []string {
	out := make([]string, len(c.items))
	copy(out, c.items)
	return out
}

// Pick returns a uniformly random headline, with replacement.
func (c Catalog) Pick(r Intner) string {
	if len(c.items) == 0 {
		return ""
	}
	return c.items[r.Intn(len(c.items))]
}
