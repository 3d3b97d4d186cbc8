package catalog

func MockCatalog(columnCounts ...uint32) *Catalog {
	catalog, err := NewCatalog(columnCounts)
	if err != nil {
		panic(err)
	}
	return catalog
}
