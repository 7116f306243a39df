// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

// Vault lifecycle.
var (
	ErrAlreadyStaked          = New("AlreadyStaked")
	ErrNotStaked              = New("NotStaked")
	ErrAlreadyVerified        = New("AlreadyVerified")
	ErrNotVerified            = New("NotVerified")
	ErrAlreadyClaimed         = New("AlreadyClaimed")
	ErrNothingToClaim         = New("NothingToClaim")
	ErrStakingClosed          = New("StakingClosed")
	ErrStakingAlreadyOpen     = New("StakingAlreadyOpen")
	ErrEventAlreadyStarted    = New("EventAlreadyStarted")
	ErrMaxParticipantsReached = New("MaxParticipantsReached")
	ErrNoAssetsToDeposit      = New("NoAssetsToDeposit")
	ErrNoParticipants         = New("NoParticipants")
	ErrVaultAlreadySettled    = New("VaultAlreadySettled")
	ErrVaultNotSettled        = New("VaultNotSettled")
	ErrReentrantCall          = New("ReentrantCall")
)

// Parameters and permissions.
var (
	ErrInvalidYieldSource     = New("InvalidYieldSource")
	ErrInvalidAddress         = New("InvalidAddress")
	ErrInvalidStakeAmount     = New("InvalidStakeAmount")
	ErrInvalidMaxParticipants = New("InvalidMaxParticipants")
	ErrInvalidFeeRate         = New("InvalidFeeRate")
	ErrAssetNotWhitelisted    = New("AssetNotWhitelisted")
	ErrUnauthorized           = New("Unauthorized")
)

// Asset and yield pool.
var (
	ErrInsufficientBalance   = New("InsufficientBalance")
	ErrInsufficientAllowance = New("InsufficientAllowance")
	ErrInsufficientShares    = New("InsufficientShares")
)

// Call execution.
var (
	ErrUnknownMethod    = New("UnknownMethod")
	ErrInvalidNonce     = New("InvalidNonce")
	ErrInvalidSignature = New("InvalidSignature")
	ErrInvalidArgs      = New("InvalidArgs")
	ErrUnknownContract  = New("UnknownContract")
)
