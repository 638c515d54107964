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

package domain

import "context"

const storageContract = `// SPDX-License-Identifier: GPL-3.0
pragma solidity >=0.8.2 <0.9.0;

/**
 * @title Storage
 * @dev Store & retrieve value in a variable
 * @custom:dev-run-script ./scripts/deploy_with_ethers.ts
 */
contract Storage {
    uint256 number;

    /**
     * @dev Store value in variable
     * @param num value to store
     */
    function store(uint256 num) public {
        number = num;
    }

    /**
     * @dev Return value 
     * @return value of 'number'
     */
    function retrieve() public view returns (uint256){
        return number;
    }
}`

const readme = `# RemixID Clone

This is a clone of RemixID for Solidity smart contract development.

## Features
- File system management
- Solidity code editing
- Smart contract compilation
- Contract deployment to Ethereum networks
- Metamask integration`

// DefaultFiles returns a fresh copy of the tree every new workspace starts with.
func DefaultFiles() Tree {
	return Tree{
		"contracts": {
			Type: NodeFolder,
			Children: Tree{
				"Storage.sol": {Type: NodeFile, Content: storageContract},
			},
		},
		"scripts":    {Type: NodeFolder, Children: Tree{}},
		"tests":      {Type: NodeFolder, Children: Tree{}},
		"README.txt": {Type: NodeFile, Content: readme},
	}
}

// DefaultSeeder seeds workspaces with DefaultFiles.
func DefaultSeeder(context.Context) (Tree, error) {
	return DefaultFiles(), nil
}
