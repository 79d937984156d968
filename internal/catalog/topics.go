package catalog

import "strconv"

const TopicProducts = "catalog.products"

// Partition key = product id, supaya semua event 1 product maintain urutan.
func PartitionKey(productID int64) []byte { return []byte(strconv.FormatInt(productID, 10)) }
