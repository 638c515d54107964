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
package rest

import (
	"errors"

	"remixfs/modules/hmac"

	"github.com/gofrs/uuid/v5"
)

var errBadHandle = errors.New("unknown workspace handle")

// handleCodec turns workspace ids into signed URL tokens and back.
type handleCodec struct {
	signer *hmac.HMACSigner
}

func (c handleCodec) encode(id uuid.UUID) (string, error) {
	return c.signer.Sign(id.Bytes())
}

func (c handleCodec) decode(handle string) (uuid.UUID, error) {
	payload, err := c.signer.Verify(handle)
	if err != nil {
		return uuid.Nil, errBadHandle
	}
	id, err := uuid.FromBytes(payload)
	if err != nil || id.IsNil() {
		return uuid.Nil, errBadHandle
	}
	return id, nil
}
