package services

import "loyaltycard/pkg/wallet"

// WalletRegistry picks the wallet provider for a customer's OS family.
// wallet.Registry is the production implementation.
type WalletRegistry interface {
	For(osFamily string) wallet.Provider
}
