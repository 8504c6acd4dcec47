package store

import (
	"strconv"
	"strings"
)

// hostToJSON renders h as a JSON object, applying filter and skip. The
// caller must already hold h's lock. Returns ok=false if neither h nor
// any descendant passes filter.
func hostToJSON(h *Host, filter Filter, skip SkipFlags) (string, bool) {
	selfMatch := matches(filter, h)

	var services, metrics, attributes []string
	if skip&SkipServices == 0 {
		for _, key := range sortedKeys(h.services) {
			svc := h.services[key]
			if obj, ok := serviceToJSON(svc, filter, skip); ok {
				services = append(services, obj)
			}
		}
	}
	if skip&SkipMetrics == 0 {
		for _, key := range sortedKeys(h.metrics) {
			m := h.metrics[key]
			if obj, ok := metricToJSON(m, filter, skip); ok {
				metrics = append(metrics, obj)
			}
		}
	}
	if skip&SkipAttributes == 0 {
		for _, key := range sortedKeys(h.attributes) {
			a := h.attributes[key]
			if matches(filter, a) {
				attributes = append(attributes, attrToJSON(a))
			}
		}
	}

	if !selfMatch && len(services) == 0 && len(metrics) == 0 && len(attributes) == 0 {
		return "", false
	}

	var b strings.Builder
	b.WriteByte('{')
	writeHeaderFields(&b, &h.header)
	if skip&SkipAttributes == 0 {
		writeArrayField(&b, "attributes", attributes)
	}
	if skip&SkipMetrics == 0 {
		writeArrayField(&b, "metrics", metrics)
	}
	if skip&SkipServices == 0 {
		writeArrayField(&b, "services", services)
	}
	b.WriteByte('}')
	return b.String(), true
}

func metricToJSON(m *Metric, filter Filter, skip SkipFlags) (string, bool) {
	selfMatch := matches(filter, m)

	var attributes []string
	if skip&SkipAttributes == 0 {
		for _, key := range sortedKeys(m.attributes) {
			a := m.attributes[key]
			if matches(filter, a) {
				attributes = append(attributes, attrToJSON(a))
			}
		}
	}
	if !selfMatch && len(attributes) == 0 {
		return "", false
	}

	var b strings.Builder
	b.WriteByte('{')
	writeHeaderFields(&b, &m.header)
	if m.storeType != "" || m.storeID != "" {
		b.WriteString(`,"store_ref":{"type":`)
		b.WriteString(strconv.Quote(m.storeType))
		b.WriteString(`,"id":`)
		b.WriteString(strconv.Quote(m.storeID))
		b.WriteByte('}')
	}
	if skip&SkipAttributes == 0 {
		writeArrayField(&b, "attributes", attributes)
	}
	b.WriteByte('}')
	return b.String(), true
}

func serviceToJSON(svc *Service, filter Filter, skip SkipFlags) (string, bool) {
	selfMatch := matches(filter, svc)

	var attributes []string
	if skip&SkipAttributes == 0 {
		for _, key := range sortedKeys(svc.attributes) {
			a := svc.attributes[key]
			if matches(filter, a) {
				attributes = append(attributes, attrToJSON(a))
			}
		}
	}
	if !selfMatch && len(attributes) == 0 {
		return "", false
	}

	var b strings.Builder
	b.WriteByte('{')
	writeHeaderFields(&b, &svc.header)
	if skip&SkipAttributes == 0 {
		writeArrayField(&b, "attributes", attributes)
	}
	b.WriteByte('}')
	return b.String(), true
}

func attrToJSON(a *Attribute) string {
	var b strings.Builder
	b.WriteByte('{')
	writeHeaderFields(&b, &a.header)
	b.WriteString(`,"value":`)
	b.WriteString(strconv.Quote(a.value.Format()))
	b.WriteByte('}')
	return b.String()
}

func writeHeaderFields(b *strings.Builder, h *header) {
	b.WriteString(`"name":`)
	b.WriteString(strconv.Quote(h.name))
	b.WriteString(`,"last_update":`)
	b.WriteString(strconv.FormatInt(h.lastUpdate, 10))
	b.WriteString(`,"update_interval":`)
	b.WriteString(strconv.FormatInt(h.Interval(), 10))
	b.WriteString(`,"backends":[`)
	for i, backend := range h.backends {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(backend))
	}
	b.WriteByte(']')
}

func writeArrayField(b *strings.Builder, key string, items []string) {
	b.WriteString(`,"`)
	b.WriteString(key)
	b.WriteString(`":[`)
	b.WriteString(strings.Join(items, ","))
	b.WriteByte(']')
}

func matches(filter Filter, src FieldSource) bool {
	if filter == nil {
		return true
	}
	return filter.Matches(src)
}
