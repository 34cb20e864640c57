// Package catalog holds the static query catalog: canned searches the
// explorer offers alongside node results. Built-in defaults ship with the
// binary; a user TOML file can add or override entries. The catalog order is
// stable, so search results always appear in the same sequence.
package catalog

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/lselvakumaran/fixinventory/pkg/errors"
)

// Query is one canned search. Search holds the backend query text; it is
// opaque to the explorer and only forwarded on selection.
type Query struct {
	ID          string `toml:"id"`
	ShortName   string `toml:"short_name"`
	Description string `toml:"description"`
	Search      string `toml:"search"`
}

// Catalog is an ordered, read-only set of queries.
type Catalog struct {
	queries []Query
	byID    map[string]int
}

// Defaults returns the built-in catalog.
func Defaults() *Catalog {
	c := &Catalog{byID: make(map[string]int)}
	for _, q := range builtins {
		c.add(q)
	}
	return c
}

// builtins are the canned searches bundled with the explorer.
var builtins = []Query{
	{
		ID:          "search-anything",
		ShortName:   "Full-text search",
		Description: "Anything that contains the given text in any field",
		Search:      `search "{term}"`,
	},
	{
		ID:          "count-by-kind",
		ShortName:   "Count instances by kind",
		Description: "Count your compute instances grouped by kind",
		Search:      "search is(aws_ec2_instance) | count kind",
	},
	{
		ID:          "expired-certificates",
		ShortName:   "Expired certificates",
		Description: "Find all expired IAM server certificates",
		Search:      "search is(aws_iam_server_certificate) and expires < '@now@'",
	},
	{
		ID:          "expired-resources",
		ShortName:   "Expired resources",
		Description: "Resources whose expiration tag lies in the past",
		Search:      `search metadata.expires < "@now@"`,
	},
	{
		ID:          "idle-volumes",
		ShortName:   "Idle volumes",
		Description: "EBS volumes older than 90 days with no I/O in the past 30 days",
		Search:      "search is(aws_ec2_volume) and age > 90d and last_access > 30d",
	},
	{
		ID:          "untagged-instances",
		ShortName:   "Untagged instances",
		Description: "EC2 instances that are missing the owner tag",
		Search:      "search is(aws_ec2_instance) and not has_key(tags, owner)",
	},
	{
		ID:          "empty-load-balancers",
		ShortName:   "Empty load balancers",
		Description: "ELBs without EC2 instances behind them",
		Search:      "search is(aws_elb) with(empty, --> is(aws_ec2_instance))",
	},
}

// userFile is the TOML shape of a user catalog file:
//
//	[[query]]
//	id = "my-query"
//	short_name = "My query"
//	description = "..."
//	search = "search ..."
type userFile struct {
	Query []Query `toml:"query"`
}

// Load returns the built-in catalog merged with the user file at path.
// User entries with a known ID override the built-in in place (keeping its
// position); new IDs append in file order. A missing file yields just the
// built-ins; a malformed file is an error.
func Load(path string) (*Catalog, error) {
	c := Defaults()
	if path == "" {
		return c, nil
	}

	var file userFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "failed to parse query catalog")
	}

	for _, q := range file.Query {
		if q.ID == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "query catalog entry without id")
		}
		c.add(q)
	}
	return c, nil
}

func (c *Catalog) add(q Query) {
	if i, ok := c.byID[q.ID]; ok {
		c.queries[i] = q
		return
	}
	c.byID[q.ID] = len(c.queries)
	c.queries = append(c.queries, q)
}

// Queries returns all entries in catalog order.
func (c *Catalog) Queries() []Query { return c.queries }

// Get returns the query with the given ID.
func (c *Catalog) Get(id string) (Query, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Query{}, false
	}
	return c.queries[i], true
}

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.queries) }
