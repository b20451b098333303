// Package nft resolves Telegram collectibles from their public pages at
// t.me/nft/<GiftSlug>-<number> into the four cell attributes, so a real
// collectible can be imported into a grid cell.
package nft
