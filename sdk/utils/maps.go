// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package utils

// MergeMaps merges map2 over map1 into a new map, giving precedence to map2.
// Nested maps present on both sides are merged recursively.
func MergeMaps(map1, map2 map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(map1)+len(map2))
	for k, v := range map1 {
		result[k] = v
	}
	for k, v2 := range map2 {
		if v1, exists := result[k]; exists {
			m1, ok1 := v1.(map[string]interface{})
			m2, ok2 := v2.(map[string]interface{})
			if ok1 && ok2 {
				result[k] = MergeMaps(m1, m2)
				continue
			}
		}
		result[k] = v2
	}
	return result
}
