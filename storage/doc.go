// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package storage defines the persistent embedding store used behind the
// oracle's in-process cache, and the binary encoding shared by its backends.
//
// Backends:
//
//   - storage/badger: embedded key-value store, on disk or in memory
//   - storage/redis: shared store for several processes
//
// Stores keep whole cache entries (model, text, vector) so a lookup can
// reject a hash collision instead of returning another text's vector.
package storage
