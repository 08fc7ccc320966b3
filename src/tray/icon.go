package tray

import "fyne.io/fyne/v2"

// SVGContent draws a dashed selection frame with a text cursor inside.
const SVGContent = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 16 16" width="16" height="16">
  <rect x="1.5" y="2.5" width="13" height="11" fill="none" stroke="#0078ff" stroke-width="1.5" stroke-dasharray="2,1"/>
  <line x1="5" y1="6" x2="11" y2="6" stroke="#333333" stroke-width="1.2" stroke-linecap="round"/>
  <line x1="5" y1="8.5" x2="9.5" y2="8.5" stroke="#333333" stroke-width="1.2" stroke-linecap="round"/>
  <line x1="5" y1="11" x2="10.5" y2="11" stroke="#333333" stroke-width="1.2" stroke-linecap="round"/>
</svg>`

// Icon is the tray and window icon.
var Icon = fyne.NewStaticResource("imgpaste.svg", []byte(SVGContent))
