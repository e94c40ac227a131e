/*
Copyright © 2019 the ChemBench authors.
This file is part of ChemBench.

ChemBench is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

ChemBench is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with ChemBench.  If not, see <http://www.gnu.org/licenses/>.
*/

package kinetics

import (
	"context"
	"runtime"

	"github.com/ctessum/requestcache"
)

// Loader reads reaction descriptions, keeping recently used ones in
// memory. Concurrent requests for the same description share a single
// read. A Loader is safe for concurrent use; the descriptions it
// returns are shared and must not be modified.
type Loader struct {
	cache *requestcache.Cache
}

// NewLoader returns a Loader that holds up to maxEntries descriptions
// in memory.
func NewLoader(maxEntries int) *Loader {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &Loader{
		cache: requestcache.NewCache(func(ctx context.Context, request interface{}) (interface{}, error) {
			return ReadDescription(ctx, request.(string))
		}, runtime.GOMAXPROCS(-1),
			requestcache.Deduplicate(), requestcache.Memory(maxEntries)),
	}
}

// Load returns the reaction description at path, which may be a
// local file or a blob storage URL.
func (l *Loader) Load(ctx context.Context, path string) (*Description, error) {
	result, err := l.cache.NewRequest(ctx, path, path).Result()
	if err != nil {
		return nil, err
	}
	return result.(*Description), nil
}
