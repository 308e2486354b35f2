package ecs

// TagBank indexes entities by tag so content can find specific entities
// (e.g. every waygate on the "yard" network) without scanning the world.
type TagBank struct {
	byTag map[string][]tagEntry
	byEnt map[Entity][]string
}

type tagEntry struct {
	ent   Entity
	value string
}

func (b *TagBank) deposit(e Entity, tag, value string) {
	if tag == "" {
		return
	}
	if b.byTag == nil {
		b.byTag = map[string][]tagEntry{}
		b.byEnt = map[Entity][]string{}
	}
	for i, entry := range b.byTag[tag] {
		if entry.ent == e {
			b.byTag[tag][i].value = value
			return
		}
	}
	b.byTag[tag] = append(b.byTag[tag], tagEntry{ent: e, value: value})
	b.byEnt[e] = append(b.byEnt[e], tag)
}

func (b *TagBank) value(e Entity, tag string) (string, bool) {
	if b == nil {
		return "", false
	}
	for _, entry := range b.byTag[tag] {
		if entry.ent == e {
			return entry.value, true
		}
	}
	return "", false
}

func (b *TagBank) tagged(tag string, value *string) []Entity {
	if b == nil {
		return nil
	}
	var out []Entity
	for _, entry := range b.byTag[tag] {
		if value != nil && entry.value != *value {
			continue
		}
		out = append(out, entry.ent)
	}
	return out
}

func (b *TagBank) drop(e Entity) {
	if b == nil || b.byEnt == nil {
		return
	}
	for _, tag := range b.byEnt[e] {
		entries := b.byTag[tag]
		for i, entry := range entries {
			if entry.ent == e {
				b.byTag[tag] = append(entries[:i], entries[i+1:]...)
				break
			}
		}
	}
	delete(b.byEnt, e)
}
