// Copyright 2025 Nhat-Nguyen Nguyen
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

package redis

import (
	"fmt"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/rueidislock"
)

// NewLocker builds a rueidislock.Locker against the same server as the
// client. The locker owns its own connection since it relies on client-side
// invalidation to wake up waiters.
func NewLocker(opt RueidisOptions) (rueidislock.Locker, error) {
	clientOpt, err := rueidis.ParseURL(opt.URL)
	if err != nil {
		return nil, fmt.Errorf("rueidislock: parse url: %w", err)
	}
	clientOpt.ClientName = opt.ClientName
	locker, err := rueidislock.NewLocker(rueidislock.LockerOption{
		ClientOption: clientOpt,
		// single primary
		KeyMajority: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("rueidislock: %w", err)
	}
	return locker, nil
}
