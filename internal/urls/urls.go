package urls

// Upstream hosts used by the catalog client and the reverse proxy

// CatalogAPI is the collectible-gift catalog API host. It lists gifts and
// the models, backdrops and patterns available for each gift.
const CatalogAPI = "https://api.changes.tg"

// CatalogCDN is the asset CDN host serving animations, pattern images and
// the gift id-to-name table.
const CatalogCDN = "https://cdn.changes.tg"

// TelegramNFT is the public page prefix for collectible gifts; the slug
// ("PlushPepe-1234") is appended.
const TelegramNFT = "https://t.me/nft/"

// Documentation URLs

// ProjectHome is the project page shown in the CLI and TUI footers.
const ProjectHome = "https://github.com/muurk/giftgrid"

// TroubleshootingGuide collects fixes for catalog and proxy connectivity
// problems.
const TroubleshootingGuide = "https://github.com/muurk/giftgrid#troubleshooting"
