package repositories

import "database/sql/driver"

func toValues(in []interface{}) []driver.Value {
	out := make([]driver.Value, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
