package sorting

// SetSortingLayer sets g's layer and fans it out to every renderer g
// currently owns. Renderers in nested groups keep the layer of their own
// group. It returns the number of renderers whose layer changed.
func (w *World) SetSortingLayer(g *Group, layer Layer) int {
	if layer == "" {
		layer = DefaultLayer
	}
	g.Layer = layer
	changed := 0
	for _, m := range g.Members {
		if !w.rendererAlive(m.Renderer) || m.Renderer.Layer == layer {
			continue
		}
		m.Renderer.Layer = layer
		changed++
	}
	if changed > 0 {
		w.logger.Debug("sorting layer changed", "group", g.Name, "layer", layer, "renderers", changed)
	}
	return changed
}
