/*
 * Copyright 2026 quarrydb.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJSONObjectRoundTrip(t *testing.T) {
	obj := JSONObject{"name": "melville", "books": float64(3)}

	value, err := obj.Value()
	require.NoError(t, err)

	var scanned JSONObject
	require.NoError(t, scanned.Scan(value))
	require.Equal(t, obj, scanned)
}

func TestJSONObjectScanString(t *testing.T) {
	var obj JSONObject
	require.NoError(t, obj.Scan(`{"k":"v"}`))
	require.Equal(t, "v", obj["k"])
}

func TestJSONObjectScanNil(t *testing.T) {
	var obj JSONObject
	require.NoError(t, obj.Scan(nil))
	require.NotNil(t, obj)
	require.Empty(t, obj)
}

func TestJSONObjectNilValue(t *testing.T) {
	var obj JSONObject
	value, err := obj.Value()
	require.NoError(t, err)
	require.Nil(t, value)
}

func TestJSONArrayScan(t *testing.T) {
	var arr JSONArray
	require.NoError(t, arr.Scan([]byte(`[{"a":1},{"b":2}]`)))
	require.Len(t, arr, 2)

	require.NoError(t, arr.Scan(nil))
	require.NotNil(t, arr)
	require.Empty(t, arr)
}

func TestScanJSONRejectsUnsupportedType(t *testing.T) {
	var obj JSONObject
	require.Error(t, obj.Scan(42))
}
