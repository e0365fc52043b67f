package rewards

// Catalog manages the set of named redeemable benefits. Authorization is the
// caller's concern (the node facade guards every mutation with RequireOwner);
// the catalog itself only enforces structural validity.
type Catalog struct {
	st State
}

// NewCatalog creates a catalog backed by the provided state.
func NewCatalog(st State) *Catalog {
	return &Catalog{st: st}
}

// AddOption creates or overwrites the option stored under id. The option's
// name mirrors its id and availability defaults to true. Cost must be
// positive.
func (c *Catalog) AddOption(id string, cost uint64, description string) error {
	if cost == 0 {
		return ErrInvalidCost
	}
	option := RedemptionOption{
		Name:        id,
		Cost:        cost,
		Available:   true,
		Description: description,
	}
	if err := c.st.KVAppend(keyOptionsIdx, id); err != nil {
		return err
	}
	return c.st.KVPut(optionKey(id), option)
}

// UpdateOption changes the cost and availability of an existing option. The
// id, name, and description are immutable through this path.
func (c *Catalog) UpdateOption(id string, cost uint64, available bool) error {
	if cost == 0 {
		return ErrInvalidCost
	}
	option, err := c.Option(id)
	if err != nil {
		return err
	}
	option.Cost = cost
	option.Available = available
	return c.st.KVPut(optionKey(id), option)
}

// Option returns the option stored under id or ErrOptionNotFound.
func (c *Catalog) Option(id string) (RedemptionOption, error) {
	var option RedemptionOption
	ok, err := c.st.KVGet(optionKey(id), &option)
	if err != nil {
		return RedemptionOption{}, err
	}
	if !ok {
		return RedemptionOption{}, ErrOptionNotFound
	}
	return option, nil
}

// Options returns a snapshot of the full catalog keyed by option id. Iteration
// order is not guaranteed.
func (c *Catalog) Options() (map[string]RedemptionOption, error) {
	var ids []string
	if err := c.st.KVGetList(keyOptionsIdx, &ids); err != nil {
		return nil, err
	}
	snapshot := make(map[string]RedemptionOption, len(ids))
	for _, id := range ids {
		option, err := c.Option(id)
		if err != nil {
			return nil, err
		}
		snapshot[id] = option
	}
	return snapshot, nil
}
