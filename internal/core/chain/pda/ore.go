package pda

import (
	"sync"

	"github.com/weisyn/oreminer/pkg/constants"
	"github.com/weisyn/oreminer/pkg/types"
)

// ==================== ORE 固定地址 ====================

type oreAddresses struct {
	config         types.Pubkey
	buses          [constants.BusCount]types.Pubkey
	mint           types.Pubkey
	treasury       types.Pubkey
	treasuryBump   uint8
	treasuryTokens types.Pubkey
}

var (
	addrOnce sync.Once
	addrs    oreAddresses
)

func loadAddresses() *oreAddresses {
	addrOnce.Do(func() {
		addrs.config, _ = MustFindProgramAddress([][]byte{constants.ConfigSeed}, constants.OreProgramID)
		for i := range addrs.buses {
			addrs.buses[i], _ = MustFindProgramAddress([][]byte{constants.BusSeed, {byte(i)}}, constants.OreProgramID)
		}
		addrs.mint, _ = MustFindProgramAddress([][]byte{constants.MintSeed, constants.MintNoise}, constants.OreProgramID)
		addrs.treasury, addrs.treasuryBump = MustFindProgramAddress([][]byte{constants.TreasurySeed}, constants.OreProgramID)
		addrs.treasuryTokens = AssociatedTokenAddress(addrs.treasury, addrs.mint)
	})
	return &addrs
}

// ConfigAddress 协议 Config 账户
func ConfigAddress() types.Pubkey { return loadAddresses().config }

// BusAddresses 8 个 Bus 账户，顺序与 bus id 一致
func BusAddresses() []types.Pubkey {
	b := loadAddresses().buses
	out := make([]types.Pubkey, len(b))
	copy(out, b[:])
	return out
}

// MintAddress ORE 代币 mint
func MintAddress() types.Pubkey { return loadAddresses().mint }

// TreasuryAddress 国库账户
func TreasuryAddress() types.Pubkey { return loadAddresses().treasury }

// TreasuryTokensAddress 国库持有 ORE 的关联代币账户
func TreasuryTokensAddress() types.Pubkey { return loadAddresses().treasuryTokens }

// ProofAddress 矿工 authority 对应的 Proof 账户及其 bump
func ProofAddress(authority types.Pubkey) (types.Pubkey, uint8) {
	return MustFindProgramAddress([][]byte{constants.ProofSeed, authority[:]}, constants.OreProgramID)
}

// AssociatedTokenAddress owner 持有 mint 的关联代币账户
func AssociatedTokenAddress(owner, mint types.Pubkey) types.Pubkey {
	addr, _ := MustFindProgramAddress(
		[][]byte{owner[:], constants.TokenProgramID[:], mint[:]},
		constants.AssociatedTokenProgram,
	)
	return addr
}
