package domain

func cloneTenantID(t *string) *string {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func (o *Order) Clone() *Order {
	c := *o
	c.TenantID = cloneTenantID(o.TenantID)
	c.Items = append([]OrderItem(nil), o.Items...)
	return &c
}

func (u *User) Clone() *User {
	c := *u
	c.TenantID = cloneTenantID(u.TenantID)
	c.Permissions = append([]Permission(nil), u.Permissions...)
	return &c
}

func (d *Dish) Clone() *Dish {
	c := *d
	c.TenantID = cloneTenantID(d.TenantID)
	return &c
}

func (c *Category) Clone() *Category {
	out := *c
	out.TenantID = cloneTenantID(c.TenantID)
	return &out
}

func (e *Expense) Clone() *Expense {
	c := *e
	c.TenantID = cloneTenantID(e.TenantID)
	return &c
}

func (r *Room) Clone() *Room {
	c := *r
	c.TenantID = cloneTenantID(r.TenantID)
	return &c
}

func (t *Tenant) Clone() *Tenant {
	c := *t
	return &c
}
